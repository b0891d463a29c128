// Package config 提供 Dallevision 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → 环境变量 的顺序叠加，
// 环境变量前缀默认为 DALLEVISION，嵌套字段以下划线连接，
// 例如 DALLEVISION_ARCHIVE_CYCLE_INTERVAL=1m。
package config
