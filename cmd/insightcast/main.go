package main

import (
	"insightcast/cmd/handlers"
	"insightcast/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
