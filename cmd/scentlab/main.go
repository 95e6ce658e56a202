package main

import (
	"scentlab/cmd/handlers"
	"scentlab/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
