package json

import (
	"os"
	"regexp"
)

// 匹配 ${VAR} 形式的环境变量占位符
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// ReplaceEnvVars 将配置内容中的 ${VAR} 替换为对应环境变量的值
func ReplaceEnvVars(raw []byte) ([]byte, error) {
	replaced := envVarPattern.ReplaceAllFunc(raw, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		if v, ok := os.LookupEnv(string(name)); ok {
			return []byte(v)
		}
		// 未设置的变量保留原样
		return match
	})
	return replaced, nil
}
