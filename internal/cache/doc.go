// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 cache 提供基于 Redis 的归档周期租约。

# 概述

暂存目录被校验与归档两个阶段共同修改，周期之间不能重叠。
单进程内由调度器保证串行；多副本共享同一暂存目录时，
Manager 以 Redis 租约保证同一时刻至多一个周期在运行。

# 核心类型

  - Manager：持有 go-redis 客户端，提供 AcquireLease、ReleaseLease、
    Holder、Ping、Close。
  - Config：地址、租约键、租约有效期与连接池参数。

# 语义

  - AcquireLease 使用 SET NX PX，租约被占用时返回 false 而非错误。
  - ReleaseLease 通过 Lua 脚本比较持有者后删除，不会释放他人的租约。
  - 进程崩溃时租约依靠 TTL 自动失效。
*/
package cache
