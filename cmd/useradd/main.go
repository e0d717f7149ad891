package main

import (
	"bufio"
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/fileshare/internal/server/config"
	"github.com/dmitrijs2005/fileshare/internal/useradd"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := useradd.Run(ctx, cfg, os.Args[1:], bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

}
