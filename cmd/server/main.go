// @title           Authway API
// @version         1.0
// @description     Регистрация по email/телефону, подтверждение кодом и выдача токенов.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import "authway/internal/app"

func main() {
	app.Run()
}
