// Package ctxkeys 集中定义跨包传递的 context 键，
// 包括 HTTP 请求 ID 与归档周期 ID。
package ctxkeys
