package main

import (
	"github.com/shieldtip/shieldtip-backend/internal/server"
)

func main() {
	server.Init()
}
