// 版权所有 2024 Dallevision Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 generator 生成每个周期的暂存三元组（图像、画面描述、故事）。

# 流程

 1. 以 prompt_file 内容请求文本模型，得到画面描述。
 2. 六面骰点数 1..3 时从 styles_file 随机追加 ", <style> style"，
    然后去掉第一个句点，得到图像提示词。
 3. 以 story_prompt_file 加上不含风格的画面描述请求故事，
    去掉第一个双引号。
 4. 请求图像（b64_json，必要时按 URL 下载）。
 5. 依次写入 currentStory.txt、currentPrompt.txt、current.jpg。

全部上游调用成功后才写文件，写入失败会清理已写部分。

# 核心类型

  - Client：OpenAI 兼容 HTTP 客户端，x/time/rate 限速，Observer 回调上报耗时。
  - Backend：Chat/Image 接口，便于替换与测试。
  - Generator：组装上述流程，写入暂存目录。
*/
package generator
