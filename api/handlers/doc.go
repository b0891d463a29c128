// Copyright (c) Dallevision Authors.
// Licensed under the MIT License.

/*
Package handlers 提供 Dallevision 运维 HTTP 端点的请求处理器。

# 概述

服务不对外提供内容路由，只暴露健康检查与版本信息。
所有 Handler 均遵循标准 net/http 接口。

# 核心类型

  - HealthHandler: /health、/healthz、/ready、/version
  - HealthCheck: 可插拔健康检查接口
  - PingCheck: 以 ping 函数实现的检查（数据库、Redis）
  - FreshnessCheck: 上一次成功周期的新鲜度检查
  - Response: 统一 JSON 响应结构（success + data + error + timestamp）
  - ResponseWriter: 包装 http.ResponseWriter 以捕获状态码，供中间件使用
*/
package handlers
