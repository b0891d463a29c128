// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 ranking 负责归档条目的元数据持久化与投票计数。

# 概述

每个归档三元组在提交时写入一行 ArchiveRanking 记录，主键为
归档标识符 YYYYMMDD_<n>，upvotes 初始值为 1。之后只允许通过
投票路径对 upvotes 做 +1 更新，本包从不删除记录。

# 核心类型

  - Ranking：GORM 模型，映射到 ArchiveRanking 表。
  - Store：持久化能力接口（InsertRecord / IncrementUpvote），
    归档引擎只依赖该接口，不依赖具体驱动。
  - GormStore：基于 GORM 的 Store 实现，附带 Get 与 Top 读方法。
  - Recorder：通过 retry.Executor 以固定延迟重试写入。

# 错误语义

写入失败不区分错误类别，全部按策略重试；重试耗尽后返回包装了
ErrCommitFailed 或 ErrUpvoteFailed 的错误。对不存在的标识符投票
影响 0 行，仅记录日志，不视为错误。
*/
package ranking
