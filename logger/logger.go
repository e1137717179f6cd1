package logger

import (
	"go.uber.org/zap"
)

// Log 全局日志对象。默认为空实现，包级代码在测试中无需初始化也可安全调用。
var Log = zap.NewNop().Sugar()

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}
