package main

import "consultlink_backend/internal/app"

func main() {
	app.RunBackend()
}
