package main

import "github.com/spec-kit/scan-token-service/internal/cli"

func main() {
	cli.Execute()
}
