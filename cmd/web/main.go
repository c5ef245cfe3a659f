package main

import "campustalk_backend/internal/app"

func main() {
	app.Run()
}
