// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cycle 驱动归档周期。

# 核心类型

  - Engine：持有暂存校验器、归档器、元数据提交器、可选的生成器与租约，
    RunOnce 执行一个完整周期并返回 Report。
  - Scheduler：单 goroutine 循环，启动即运行一次，之后按间隔运行；
    同一进程内周期不会重叠，关闭时等待进行中的周期结束。

# 周期阶段

 1. 获取 Redis 租约（若启用），被占用则跳过本周期。
 2. 校验暂存目录，清理残缺三元组。
 3. 若暂存中已有完整三元组，先归档并提交。
 4. 调用生成器写入新三元组，归档并提交。

每个周期有 uuid 标识，用于日志与 span 关联。
*/
package cycle
