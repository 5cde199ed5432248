// @title Growth Assessment API
// @version 1.0
// @description 企业成长自评问卷服务：分区问卷、答案存储与建议网关。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"growth_assessment/internal/app"
	"growth_assessment/internal/config"
	"growth_assessment/pkg/logger"
	"log"
)

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	checkOnly := flag.Bool("check-config", false, "只校验配置，完成后退出")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *checkOnly {
		log.Printf("配置校验通过 (backend: %s, failure mode: %s)", cfg.Advice.BackendURL, cfg.Advice.UpstreamFailureMode)
		return
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
