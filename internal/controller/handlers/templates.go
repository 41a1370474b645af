package handlers

// courseMessageTemplate is the fixed instructional template sent when a
// user submits a photo or document: the bot does not do OCR, so the
// user is asked to run the image through an external converter first.
const courseMessageTemplate = `【课程消息模板】

📚 基本信息

• 学校：XX大学（没有则不显示）

• 班级：XX班（没有则不显示）

• 专业：XX专业（没有则不显示）

• 学院：XX学院（没有则不显示）

🗓️ 每周课程详情
星期X

• 上课时间（节次和时间）：
课程名称
教师：老师姓名
上课地点：教室/场地
周次：具体周次

示例：
星期一
上课时间：第1-2节（08:00-09:40）
课程名称：高等数学
教师：张三
上课地点：教1-201
周次：1-16周

周末：无课程。

🌙 晚间课程

• 上课时间（节次和时间）：
课程名称
教师：老师姓名
上课地点：教室/场地
周次：具体周次

📌 重要备注

• 备注内容1

• 备注内容2

请留意课程周次及教室安排，合理规划学习时间！`

const mediaReplyText = "抱歉，我无法识别图片和文件。" +
	"请复制下方【课程消息模板】，将课程表图片或文件连同模板一起发给豆包，" +
	"让它生成课程表文本后，再发送给我。\n\n" + courseMessageTemplate

const helpText = `课程提醒机器人使用说明：

1. 发送课程表
直接发送课程表文本即可，格式需要符合模板要求。

2. 命令列表：
/help - 显示此帮助信息
/test - 发送一条测试提醒
/preview - 预览明天的课程
/status - 查看当前提醒状态
/start - 开启课程提醒
/stop - 停止课程提醒
/clear - 清除课程数据
/table - 生成课程表图片

3. 注意事项：
- 目前仅支持文本格式的课程表
- 如果发送图片或文件，会提示使用外部工具生成课程表文本
- 课程提醒会在每节课前30分钟发送
- 每天晚上23:00会发送第二天的课程预览`

const noScheduleText = "您还没有设置课程表，请先发送课程表。"

const parseFailedText = "抱歉，解析课程信息失败，请检查格式是否正确。" +
	"课程表需要包含：星期、上课时间、课程名称、周次。发送 /help 查看模板。"

const aiUnavailableText = "解析服务暂时不可用，请稍后再试。"

const confirmPromptText = "已解析您的课程信息，请确认是否正确：\n\n%s\n\n回复\"确认\"开启提醒，回复\"取消\"放弃。"

const testReminderText = "这是一条测试提醒消息：\n\n" +
	"【课程提醒】\n上课时间：第1-2节（08:00-09:40）\n课程名称：高等数学\n教师：张三\n上课地点：教1-201"
