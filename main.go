package main

import "pilemap/internal/app"

func main() {
	app.Main()
}
