// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 migration 管理 ArchiveRanking 表的 Schema 版本，基于 golang-migrate，
支持 MySQL、PostgreSQL 与 SQLite。

# 概述

各方言的 SQL 文件通过 embed.FS 内嵌在 migrations/<dialect>/ 下，
版本号在三种方言间保持一致。SQLite 使用纯 Go 的 modernc 驱动，
迁移无需 cgo。

# 核心类型

  - Migrator：Up/Down/DownAll/Goto/Force/Version/Status/Info/Close。
  - DefaultMigrator：基于 golang-migrate 的实现。
  - CLI：面向终端的格式化输出，供 dallevision migrate 子命令使用。
  - NewMigratorFromDatabaseConfig：从应用配置的 database 段创建迁移器。
*/
package migration
