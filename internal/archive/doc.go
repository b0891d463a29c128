// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 archive 实现三元组（图像、提示词、故事）从暂存目录到按日期
分区的永久归档目录的搬迁与编号。

# 概述

每个生成周期在暂存目录中留下 current.jpg、currentPrompt.txt 与
currentStory.txt 三个文件。本包负责：

  - 周期开始前清理崩溃遗留的不完整暂存状态（StagingValidator）；
  - 扫描当日目录计算下一个序号（NextSequence）；
  - 以 rename 方式原子地将三元组搬入 <root>/YYYY/MM/DD/ 并以
    "<n>_" 为前缀命名（Archiver）；
  - 同步、有界地确认目标文件可见，并从归档位置回读文本内容；
  - 由日期与序号派生 YYYYMMDD_<n> 形式的标识符（Entry.ID）。

# 文件布局

	<staging>/current.jpg
	<staging>/currentPrompt.txt
	<staging>/currentStory.txt
	<root>/<YYYY>/<MM>/<DD>/<n>_.jpg
	<root>/<YYYY>/<MM>/<DD>/<n>_prompt.txt
	<root>/<YYYY>/<MM>/<DD>/<n>_story.txt

序号在同一天内从 1 开始连续递增，不补零；排序必须按解析出的
整数进行，不能按字典序。
*/
package archive
