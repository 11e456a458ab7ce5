package main

import (
	"log"

	"fitsoul/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("fitsoul failed: %v", err)
	}
}
