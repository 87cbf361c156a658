// controller/controllers.go
package controller

type Controllers struct {
	Bot   *BotController
	Admin *AdminController
}
