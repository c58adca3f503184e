package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/motoexpress/pedidos_api/internal/handlers"
	"github.com/motoexpress/pedidos_api/internal/middleware/auth"
)

type Deps struct {
	PedidoHandler     *handlers.PedidoHandler
	UsuarioHandler    *handlers.UsuarioHandler
	MercadoriaHandler *handlers.MercadoriaHandler
	SearchHandler     *handlers.SearchHandler
	JWTSecret         []byte
}

// Register wires every route exactly once per method and path.
func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	pedido := e.Group("/pedido")
	pedido.GET("", d.PedidoHandler.GetPedidos)
	pedido.GET("/:usuario_id", d.PedidoHandler.GetPedidosByUsuario)
	pedido.POST("", d.PedidoHandler.CreatePedido)
	pedido.PATCH("/:id", d.PedidoHandler.UpdateStatus)
	pedido.DELETE("/:id", d.PedidoHandler.DeletePedido)

	usuario := e.Group("/usuario")
	usuario.GET("", d.UsuarioHandler.GetUsuarios)
	usuario.GET("/pesquisa/:termo", d.UsuarioHandler.SearchUsuarios)
	usuario.GET("/:id", d.UsuarioHandler.GetUsuario)
	usuario.POST("", d.UsuarioHandler.Register)
	usuario.POST("/login", d.UsuarioHandler.Login)
	usuario.POST("/solicitar-recuperacao", d.UsuarioHandler.RequestRecovery)
	usuario.PATCH("/alterar-senha", d.UsuarioHandler.ResetPassword)
	usuario.PUT("/:id", d.UsuarioHandler.UpdateUsuario)
	usuario.DELETE("/:id", d.UsuarioHandler.DeleteUsuario)

	loginRequired := auth.RequireLogin(d.JWTSecret)

	mercadoria := e.Group("/mercadoria")
	mercadoria.GET("", d.MercadoriaHandler.GetMercadorias)
	mercadoria.GET("/busca", d.SearchHandler.Search)
	mercadoria.POST("", d.MercadoriaHandler.CreateMercadoria, loginRequired)
	mercadoria.DELETE("/:id", d.MercadoriaHandler.DeleteMercadoria, loginRequired)
}
