// 程序入口：家谱导入与建树命令行；各子命令只负责装配依赖，具体逻辑在 internal 包中
package main

import (
	"os"

	"family-atlas/internal/logger"
)

func main() {
	logger.Setup()
	if err := newRootCmd().Execute(); err != nil {
		logger.L().Error("command_failed", "err", err)
		os.Exit(1)
	}
}
