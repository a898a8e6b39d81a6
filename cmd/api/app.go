package main

import (
	"github.com/gin-gonic/gin"

	"github.com/xiebiao/techhaven/internal/infrastructure/events"
	"github.com/xiebiao/techhaven/internal/interface/rpc"
)

// App 进程内需要启动的组件
type App struct {
	Engine *gin.Engine
	GRPC   *rpc.Server
	Hub    *events.Hub
	Relay  *events.Relay
}
