// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的归档引擎指标采集。

# 概述

Collector 通过 promauto 注册全部指标，按 namespace 隔离。
NewCollector 注册到默认 Registerer，供 /metrics 端点直接暴露；
NewCollectorWith 允许测试使用独立 Registry。

# 指标分组

  - HTTP：运维端点的请求总数与耗时，状态码归类为 2xx/3xx/4xx/5xx。
  - 周期：按结果计数、耗时、跳过原因、最近一次成功时间。
  - 暂存：校验结果（empty/complete/discarded/overfull/unreadable）。
  - 归档：归档条目数、失败原因、最近序号、存在性检查失败数。
  - 元数据：提交结果、投票结果、按操作统计的重试次数。
  - 生成器：上游请求数与耗时，按 chat/image 区分。
  - 数据库：连接池 open/in_use/idle。
*/
package metrics
