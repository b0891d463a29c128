// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 database 负责打开归档元数据库，并以 PoolManager 管理连接池。

# 概述

Open 根据 config.DatabaseConfig 选择 GORM 方言（mysql 为默认，
另支持 postgres 与 sqlite），随后交给 PoolManager 统一设置
最大连接数、生命周期与空闲回收。后台健康检查定时 PingContext，
成功时把统计信息交给可选的观察者（用于导出指标），失败时写 zap 日志。

# 核心类型

  - PoolManager：持有 GORM DB 与底层 sql.DB，提供 DB()、Ping()、
    Stats()、GetStats()、Close()。
  - PoolConfig：连接池配置与校验。
  - PoolStats：友好格式的连接池统计信息。

Close 会先停止健康检查协程再关闭连接，可重复调用。
*/
package database
