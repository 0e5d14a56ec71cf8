package api

import (
	"net/http"
	"strings"

	"github.com/Freeeeeet/faculty_chat/internal/auth"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const teacherIDKey = "teacherID"

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")

// requireTeacher проверяет bearer-токен и кладёт id учителя в контекст
func requireTeacher(tokens *auth.Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return errUnauthorized
			}

			teacherID, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				return errUnauthorized.WithInternal(err)
			}

			c.Set(teacherIDKey, teacherID)
			return next(c)
		}
	}
}

func currentTeacherID(c echo.Context) string {
	id, _ := c.Get(teacherIDKey).(string)
	return id
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if id := currentTeacherID(c); id != "" {
				fields = append(fields, zap.String("teacher_id", id))
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}

			if v.Status >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
			} else {
				logger.Debug("Request", fields...)
			}
			return nil
		},
	})
}
