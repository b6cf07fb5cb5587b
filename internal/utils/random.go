package utils

import (
	"math/rand"
	"time"

	"github.com/mozillazg/go-pinyin"
	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/reconcile"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/store"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "霞", "飞", "玲", "超",
	"华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌", "欣",
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

func GenerateUsernameFromChineseName(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	username := ""

	for _, pinyin := range pinyinArray {
		length := rand.Intn(len(pinyin)) + 1
		username += pinyin[:length]
	}

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		username += string(digits[rand.Intn(len(digits))])
	}

	return username
}

func GenerateRandomCashier(password string) domain.User {
	fullName := GenerateRandomChineseName()

	return domain.User{
		ID:       store.NewUserID(),
		Username: GenerateUsernameFromChineseName(fullName),
		Name:     fullName,
		Password: password,
		Role:     domain.RoleCashier,
	}
}

// 随机生成一个两位小数的金额
func randomAmount(max int) decimal.Decimal {
	cents := rand.Int63n(int64(max) * 100)
	return decimal.New(cents, -2)
}

// GenerateRandomShiftRecord 生成一条历史班次记录，
// 派生字段通过对账计算器得出，保证与原始输入自洽
func GenerateRandomShiftRecord(user *domain.User, daysAgo int) domain.ShiftRecord {
	closedAt := time.Now().AddDate(0, 0, -daysAgo)

	in := reconcile.Input{
		StartingCash:  randomAmount(2000),
		CashSales:     randomAmount(8000),
		CardSales:     randomAmount(8000),
		TransferSales: randomAmount(3000),
		Expenses:      randomAmount(500),
	}
	// 在期望值附近制造一个小的随机差额
	expected := in.StartingCash.Add(in.CashSales).Sub(in.Expenses)
	in.ActualCash = expected.Add(randomAmount(100)).Sub(decimal.NewFromInt(50))

	if rand.Intn(2) == 0 {
		external := in.CashSales.Add(in.CardSales).Add(randomAmount(60)).Sub(decimal.NewFromInt(30))
		in.ExternalSystemData = &external
	}

	result := reconcile.Calculate(in)

	return domain.ShiftRecord{
		ID:                 domain.NewShiftID(closedAt),
		UserID:             user.ID,
		UserName:           user.Name,
		Date:               closedAt,
		StartTime:          closedAt.Add(-8 * time.Hour),
		EndTime:            closedAt,
		StartingCash:       in.StartingCash,
		CashSales:          in.CashSales,
		CardSales:          in.CardSales,
		TransferSales:      in.TransferSales,
		ExternalSystemData: in.ExternalSystemData,
		Expenses:           in.Expenses,
		ExpectedCash:       result.ExpectedCash,
		ActualCash:         in.ActualCash,
		Discrepancy:        result.Discrepancy,
		Notes:              "",
	}
}
