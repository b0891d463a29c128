// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 retry 提供固定间隔的有界重试执行器。

# 概述

Executor 以固定延迟重复执行操作，直到成功或连续失败次数达到上限。
不区分错误类型（所有失败均视为可重试），不做指数退避与随机抖动。
上限耗尽时返回包装了 ErrExhausted 与最后一次错误的终止错误。

# 核心类型

  - Executor：重试执行器，持有 zap 日志与可选的重试回调。
  - Policy：最大尝试次数与固定延迟的组合配置。
  - Operation：被执行的操作签名。

# 主要能力

  - Run / RunPolicy：执行无返回值的操作。
  - RunWithResult：泛型包装，返回操作结果，避免类型断言。
  - 上下文取消：等待延迟期间监听 ctx，取消时立即返回。
*/
package retry
