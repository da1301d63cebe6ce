// Package thumbnail PDF 首页封面生成
//
// 渲染 PDF 第一页为位图，按固定宽度等比缩放后编码为 JPEG。
// 渲染失败（损坏/加密的 PDF）由调用方回退到默认封面，
// 不中断出版物创建流程。
package thumbnail

import (
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
)

// 默认参数
const (
	DefaultWidth   = 400
	DefaultQuality = 85
)

// Options 封面生成参数
type Options struct {
	Width   int // 目标宽度（像素），高度按纵横比推算
	Quality int // JPEG 质量
}

// TargetHeight 按纵横比由目标宽度推算高度
//
// 仅有的"自定义逻辑"：h' = h * (w' / w)，向下取整，最小为 1。
func TargetHeight(srcWidth, srcHeight, targetWidth int) int {
	if srcWidth <= 0 || srcHeight <= 0 || targetWidth <= 0 {
		return 1
	}
	h := srcHeight * targetWidth / srcWidth
	if h < 1 {
		h = 1
	}
	return h
}

// Generate 渲染 pdfPath 第一页并写出 JPEG 到 outPath
func Generate(pdfPath, outPath string, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultQuality
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return fmt.Errorf("thumbnail: open pdf: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return fmt.Errorf("thumbnail: render page 1: %w", err)
	}

	bounds := img.Bounds()
	height := TargetHeight(bounds.Dx(), bounds.Dy(), opts.Width)
	resized := imaging.Resize(img, opts.Width, height, imaging.Lanczos)

	if err := imaging.Save(resized, outPath, imaging.JPEGQuality(opts.Quality)); err != nil {
		return fmt.Errorf("thumbnail: save jpeg: %w", err)
	}
	return nil
}
