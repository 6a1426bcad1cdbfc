package main

import (
	"kolayfit/config"
	"kolayfit/routes"
	"kolayfit/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()
	r := routes.SetupRouter()
	r.Run(":8080")
}
