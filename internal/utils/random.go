package utils

import (
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/domain"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "庆",
	"建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var eventTitles = []string{
	"读书会", "周末聚餐", "期末复习", "社团例会", "羽毛球", "桌游之夜", "项目讨论", "爬山",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateParticipantIDFromChineseName 取每个字拼音的前缀再加几位数字，模拟 LINE 之外的自填 ID
func GenerateParticipantIDFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	id := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		id += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		id += string(digits[rand.Intn(len(digits))])
	}

	return id
}

// GenerateRandomParticipant 返回参与者 ID 和显示名称
func GenerateRandomParticipant() (string, string) {
	displayName := GenerateRandomChineseName()
	return GenerateParticipantIDFromChineseName(displayName), displayName
}

func GenerateRandomEventTitle() string {
	return eventTitles[rand.Intn(len(eventTitles))]
}

// GenerateRandomWindows 在 from 之后的 days 天里随机生成若干个以半小时为单位的时间段
// 生成的时间段可能重叠也可能首尾相接，用来模拟用户真实的输入
func GenerateRandomWindows(from time.Time, days int) []domain.TimeWindow {
	const slot = 30 * time.Minute

	count := rand.Intn(5)
	windows := make([]domain.TimeWindow, 0, count)
	for i := 0; i < count; i++ {
		day := from.AddDate(0, 0, rand.Intn(days))
		// 08:00 到 22:00 之间
		start := day.Add(8*time.Hour + time.Duration(rand.Intn(28))*slot)
		end := start.Add(time.Duration(rand.Intn(6)+1) * slot)
		windows = append(windows, domain.NewTimeWindow(start, end))
	}

	return windows
}
