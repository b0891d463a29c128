// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 clock 提供可注入的时钟抽象，使归档周期中的日期分区
（尤其是跨午夜场景）可以在测试中被确定性地控制。

# 核心类型

  - Clock：时钟接口，提供 Now 与 NewTicker。
  - Real：基于 time 包的生产实现。
  - Fake：测试实现，手动推进时间并触发 Ticker。
*/
package clock
