package main

import (
	"flag"
	"log"
	"strings"

	"github.com/sleepstars/gpto/internal/mockapi"
)

func main() {
	port := flag.String("port", "8001", "Port to run the server on")
	token := flag.String("token", "", "Bearer token required from clients (empty accepts any)")
	models := flag.String("models", "", "Comma separated model ids served by /v1/models")
	flag.Parse()

	var ids []string
	if *models != "" {
		ids = strings.Split(*models, ",")
	}

	r := mockapi.NewRouter(mockapi.Options{
		Token:  *token,
		Models: ids,
	})

	// Point gpto at it with: gpto -e http://localhost:8001 -p "hello"
	if err := r.Run(":" + *port); err != nil {
		log.Fatal(err)
	}
}
