package utils

import (
	"bytes"
	"fmt"
	"math/rand"

	svg "github.com/ajstarks/svgo"
)

const captchaLength = 4

// 去掉了易混淆的 0/1，审核员在手机上也能看清
const captchaCharset = "23456789"

func randomCode() string {
	code := make([]byte, captchaLength)
	for i := range code {
		code[i] = captchaCharset[rand.Intn(len(captchaCharset))]
	}
	return string(code)
}

// 干扰元素用浅色，避免盖住字符
func noiseColor() string {
	return fmt.Sprintf("#%02x%02x%02x",
		rand.Intn(106)+150,
		rand.Intn(106)+150,
		rand.Intn(106)+150)
}

func textColor() string {
	return fmt.Sprintf("#%02x%02x%02x",
		rand.Intn(120)+40,
		rand.Intn(120)+40,
		rand.Intn(120)+40)
}

// GenerateSVG 生成登录验证码SVG图片，返回图片字节和明文答案
func GenerateSVG(width, height int) ([]byte, string) {
	code := randomCode()

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, height)

	canvas.Rect(0, 0, width, height, "fill:white")

	// 干扰线
	for i := 0; i < 5; i++ {
		canvas.Line(rand.Intn(width), rand.Intn(height), rand.Intn(width), rand.Intn(height),
			fmt.Sprintf("stroke:%s;stroke-width:1", noiseColor()))
	}

	// 干扰点
	for i := 0; i < 25; i++ {
		canvas.Circle(rand.Intn(width), rand.Intn(height), 1, fmt.Sprintf("fill:%s", noiseColor()))
	}

	// 逐字符摆放，位置和角度随机抖动
	charWidth := width / (captchaLength + 1)
	for i, char := range code {
		x := charWidth * (i + 1)
		y := height/2 + rand.Intn(10) - 5
		rotate := rand.Intn(30) - 15
		canvas.Text(x, y, string(char),
			fmt.Sprintf("text-anchor:middle;font-size:%dpx;fill:%s;transform:rotate(%d,%d,%d)",
				height/2, textColor(), rotate, x, y))
	}

	canvas.End()
	return buf.Bytes(), code
}
