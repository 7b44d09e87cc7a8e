package web

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"time"

	"github.com/gin-gonic/gin"

	"PhoenixAggregator/goaggregator/core/logger"
	"PhoenixAggregator/goaggregator/core/services"
	"PhoenixAggregator/goaggregator/core/web/controllers"
)

func Router(app *services.Application) *gin.Engine {
	engine := gin.New()
	config := app.Store.Config
	basicAuth := gin.BasicAuth(gin.Accounts{config.BasicAuthUsername: config.BasicAuthPassword})
	engine.Use(loggerFunc(logger.LoggerWriter()), gin.Recovery(), basicAuth)
	v2 := engine.Group("/v2")
	{
		rc := controllers.RoundsController{App: app}
		// registered outside /rounds; a static segment cannot share a
		// level with the :roundID wildcard
		v2.GET("/latestround", rc.Latest)
		v2.GET("/rounds/:roundID", rc.Show)
		v2.GET("/rounds/:roundID/answer", rc.Answer)

		sc := controllers.SubmissionsController{App: app}
		v2.POST("/rounds/:roundID/submissions", sc.Create)

		rw := controllers.RewardsController{App: app}
		v2.GET("/rewards/:address", rw.Show)
		v2.POST("/rewards/:address/unlock", rw.Unlock)

		fc := controllers.FundsController{App: app}
		v2.GET("/funds", fc.Show)
		v2.POST("/funds", fc.Create)

		oc := controllers.OraclesController{App: app}
		v2.GET("/oracles/:address/admin", oc.Admin)
		v2.GET("/roundstate", oc.RoundState)
	}
	return engine
}

func loggerFunc(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		buf, _ := ioutil.ReadAll(c.Request.Body)
		rdr := bytes.NewBuffer(buf)
		c.Request.Body = ioutil.NopCloser(bytes.NewBuffer(buf))

		start := time.Now()
		c.Next()
		end := time.Now()

		logger.Infow("Web request",
			"method", c.Request.Method,
			"status", c.Writer.Status(),
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"body", readBody(rdr),
			"clientIP", c.ClientIP(),
			"comment", c.Errors.ByType(gin.ErrorTypePrivate).String(),
			"servedAt", end.Format("2006/01/02 - 15:04:05"),
			"latency", fmt.Sprintf("%v", end.Sub(start)),
		)
	}
}

func readBody(reader io.Reader) string {
	buf := new(bytes.Buffer)
	buf.ReadFrom(reader)

	s := buf.String()
	return s
}
