// Copyright (c) Dallevision Authors.
// Licensed under the MIT License.

/*
Package testutil 提供 Dallevision 测试的共享工具和辅助函数。

# 概述

testutil 为周期引擎、命令行与生成器的测试提供统一的辅助能力，
避免各包重复构造暂存目录与归档目录。

# 核心能力

  - 上下文辅助: TestContext / TestContextWithTimeout / CancelledContext，
    自动注册 Cleanup 防止泄漏
  - 文件布局: StageTriplet / WriteArchivedEntry 按归档布局写入测试文件
  - 异步断言: AssertEventuallyTrue，超时轮询等待条件满足

# 子包

  - testutil/mocks: 元数据提交器、周期租约与生成接口的测试替身，
    支持错误注入与调用记录

internal/archive 的测试不使用本包，以免形成导入环。
*/
package testutil
