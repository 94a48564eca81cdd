package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tanmoysrt/binlog-parser-indexer/indexer"
	"github.com/tanmoysrt/binlog-parser-indexer/output"
	"github.com/tanmoysrt/binlog-parser-indexer/store"
	"gopkg.in/yaml.v3"
)

func init() {
	_ = godotenv.Load()
}

// Config 定义全局配置结构
// 用于从配置文件加载应用程序的所有配置项
type Config struct {
	Indexer indexer.Config `yaml:"indexer" json:"indexer" mapstructure:"indexer"`
	Store   store.Config   `yaml:"store" json:"store" mapstructure:"store"`
	Output  output.Config  `yaml:"output" json:"output" mapstructure:"output"`
}

// Load 尝试加载配置。
// 加载顺序：优先读取文件 → 若文件不存在或解析失败，则从环境变量加载。
func Load(path string) (*Config, error) {
	var cfg Config

	// ① 优先尝试从配置文件加载
	data, err := os.ReadFile(path)
	if err == nil {
		if yamlErr := yaml.Unmarshal(data, &cfg); yamlErr == nil {
			return &cfg, nil
		}
		// 如果 YAML 解析失败，则继续尝试环境变量
	}

	// ② 文件加载失败，尝试从环境变量加载
	if envErr := env.Parse(&cfg); envErr == nil {
		return &cfg, nil
	}

	// ③ 若两种方式都失败，返回错误信息
	return nil, fmt.Errorf("failed to load configuration (file: %v, env: %v)", err, env.Parse(&cfg))
}
