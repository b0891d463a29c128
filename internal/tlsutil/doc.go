// Package tlsutil 提供出站 HTTP 客户端的 TLS 加固配置（TLS 1.2+，仅 AEAD 密码套件），
// 供图像与文本生成接口的客户端使用。
package tlsutil
