package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/sirupsen/logrus"
)

const (
	AuthBackendLocal  = "local"
	AuthBackendGoTrue = "gotrue"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	// 认证后端: local 使用本地数据库, gotrue 转发到 GoTrue/Supabase 兼容服务
	AuthBackend string `env:"AUTH_BACKEND" envDefault:"local"`

	GoTrueURL            string `env:"GOTRUE_URL" envDefault:""`
	GoTrueAPIKey         string `env:"GOTRUE_API_KEY" envDefault:""`
	GoTrueTimeoutSeconds int    `env:"GOTRUE_TIMEOUT_SECONDS" envDefault:"10"`

	DBType     string `env:"DBType" envDefault:"sqlite"`
	DSNURL     string `env:"DSN_URL" envDefault:""`
	DBUser     string `env:"DBUser" envDefault:""`
	DBPassword string `env:"DBPassword" envDefault:""`
	DBAddr     string `env:"DBAddr" envDefault:""`
	DBName     string `env:"DBName" envDefault:"authpages"`
	DBPath     string `env:"DBPath" envDefault:"datas/authpages.db"`
	DBPort     string `env:"DBPort" envDefault:"3306"`

	// GoTrue 模式下需与远端 JWT 密钥一致, 否则无法解析会话.
	// 只支持 HS256; 使用非对称签名密钥(RS256/ES256)的项目登录后会话无法被识别
	JWTSecret            string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTIssuer            string `env:"JWT_ISSUER" envDefault:"authpages"`
	JWTExpirationMinutes int    `env:"JWT_EXPIRATION_MINUTES" envDefault:"1440"`

	SessionCookieName   string `env:"SESSION_COOKIE_NAME" envDefault:"authpages_session"`
	SessionCookieSecure bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	RedirectPath     string `env:"REDIRECT_PATH" envDefault:"/"`
	ValidateOnChange bool   `env:"VALIDATE_ON_CHANGE" envDefault:"false"`
}

func ParseConfig() (Config, error) {
	var Conf Config
	err := env.Parse(&Conf)
	if err != nil {
		logrus.WithError(err).Error("env.Parse error")
		return Config{}, err
	}
	logrus.WithFields(logrus.Fields{
		"auth_backend": Conf.AuthBackend,
		"db_type":      Conf.DBType,
		"http_port":    Conf.HTTPPort,
	}).Debug("config loaded")
	return Conf, nil
}
