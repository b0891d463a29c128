// Copyright (c) Dallevision Authors.
// Licensed under the MIT License.

/*
Package main 提供 Dallevision 归档服务的程序入口。

# 概述

cmd/dallevision 装配暂存校验、归档搬迁、元数据提交与可选的图像生成，
并以 serve 常驻调度或以 cycle 单次执行。运维子命令覆盖投票、
当日最新条目查询、票数排行与数据库迁移。

# 核心类型

  - App: 按配置装配的运行时组件（数据库、Redis 租约、周期引擎）
  - Server: 周期调度器与 HTTP、Metrics 双端口服务
  - Middleware: HTTP 中间件函数签名 func(http.Handler) http.Handler

# 主要能力

  - 子命令：serve、cycle、upvote、latest、top、migrate、version、health
  - 中间件链：Recovery、RequestID、SecurityHeaders、OTelTracing、
    MetricsMiddleware、RequestLogger
  - Metrics 服务器：独立端口暴露 /metrics（Prometheus）
  - 优雅关闭：信号 → 排空进行中的周期 → 关闭 HTTP → 关闭 Metrics → 释放连接
  - 构建注入：Version、BuildTime、GitCommit 通过 ldflags 设置
*/
package main
