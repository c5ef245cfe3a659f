package validator

import (
	"log"

	"campustalk_backend/internal/models"
	"campustalk_backend/internal/models/chat"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-message-type", validateMessageType)
	mustRegister("is-presence-status", validatePresenceStatus)
	mustRegister("is-notification-type", validateNotificationType)
}

func validateMessageType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		// Empty values are the 'required' tag's problem.
		return true
	}
	return chat.ValidMessageType(chat.MessageType(value))
}

func validatePresenceStatus(fl validator.FieldLevel) bool {
	switch models.PresenceStatus(fl.Field().String()) {
	case "", models.PresenceOnline, models.PresenceAway, models.PresenceOffline:
		return true
	}
	return false
}

func validateNotificationType(fl validator.FieldLevel) bool {
	switch models.NotificationType(fl.Field().String()) {
	case "", models.NotificationFriendRequest, models.NotificationFriendRequestSent,
		models.NotificationFriendAccepted, models.NotificationFriendRejected,
		models.NotificationGroupInvite:
		return true
	}
	return false
}
