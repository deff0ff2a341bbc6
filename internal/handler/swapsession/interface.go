package swapsession

import "github.com/gin-gonic/gin"

type IHandler interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)

	SetDirection(c *gin.Context)
	EditAmount(c *gin.Context)
	UseMax(c *gin.Context)
	UseMin(c *gin.Context)
	SetDestination(c *gin.Context)
	SetWallet(c *gin.Context)

	Submit(c *gin.Context)
	Refetch(c *gin.Context)
	Poke(c *gin.Context)

	ListAssets(c *gin.Context)
}
