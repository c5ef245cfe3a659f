package contextkeys

// Custom key type to avoid collisions with other packages.
type contextKey string

// DBContextKey is the key under which the request-scoped *gorm.DB
// (pool or transaction) is stored in the gin context.
const DBContextKey = contextKey("db")

// UserIDContextKey is the key for the authenticated user id.
const UserIDContextKey = contextKey("userID")
