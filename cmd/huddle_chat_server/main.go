package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"huddle_chat_server/internal/config"
	dao "huddle_chat_server/internal/dao/mysql"
	myredis "huddle_chat_server/internal/dao/redis"
	"huddle_chat_server/internal/handler"
	"huddle_chat_server/internal/https_server"
	"huddle_chat_server/internal/infrastructure/logger"
	"huddle_chat_server/internal/service"
	"huddle_chat_server/pkg/util/jwt"
	"huddle_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, "dev"); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花算法（消息 ID 生成）
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	// 4. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 5. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 7. 初始化 Service 层（依赖注入）
	service.InitServices(repos, myredis.GetCacheService())
	zap.L().Info("Service 层初始化成功")

	// 8. 启动聊天服务器（Kafka 模式需要先建立连接）
	if conf.KafkaConfig.MessageMode == "kafka" {
		service.Svc.ChatServer.InitKafka()
	}
	go service.Svc.ChatServer.Start()
	zap.L().Info("ChatServer 初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 9. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}

	// 10. 初始化 HTTP 服务器并启动
	handlers := handler.NewHandlers(service.Svc)
	engine := https_server.Init(handlers)

	host := conf.MainConfig.Host
	port := conf.MainConfig.Port

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		var err error
		if conf.MainConfig.TlsEnable {
			err = engine.RunTLS(addr, conf.MainConfig.CertFile, conf.MainConfig.KeyFile)
		} else {
			err = engine.Run(addr)
		}
		if err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("服务器启动成功", zap.String("host", host), zap.Int("port", port))

	// 设置信号监听，等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	service.Svc.ChatServer.Close()
	zap.L().Info("服务器已关闭")
}
