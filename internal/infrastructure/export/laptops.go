// Package export 商品数据导出
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/tealeg/xlsx"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
)

// ContentType xlsx 的MIME类型
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var laptopHeaders = []string{
	"ID", "Name", "Brand", "Type", "Processor", "RAM", "Storage", "Display", "Graphics",
	"Price", "Stock", "Available", "Rating", "Reviews", "Category", "Images", "CreatedAt", "UpdatedAt",
}

// WriteLaptops 将商品写入Excel，价格按元输出
func WriteLaptops(w io.Writer, laptops []*laptop.Laptop) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Laptops")
	if err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range laptopHeaders {
		header.AddCell().SetValue(h)
	}

	for _, l := range laptops {
		row := sheet.AddRow()
		row.AddCell().SetValue(l.ID)
		row.AddCell().SetValue(l.Name)
		row.AddCell().SetValue(string(l.Brand))
		row.AddCell().SetValue(string(l.Type))
		row.AddCell().SetValue(l.Specs.Processor)
		row.AddCell().SetValue(l.Specs.RAM)
		row.AddCell().SetValue(l.Specs.Storage)
		row.AddCell().SetValue(l.Specs.Display)
		row.AddCell().SetValue(l.Specs.Graphics)
		row.AddCell().SetValue(fmt.Sprintf("%d.%02d", l.Price/100, l.Price%100))
		row.AddCell().SetValue(l.Stock)
		row.AddCell().SetValue(l.IsAvailable)
		row.AddCell().SetValue(l.AverageRating)
		row.AddCell().SetValue(l.NumReviews)
		category := ""
		if l.CategoryID != nil {
			category = fmt.Sprint(*l.CategoryID)
		}
		row.AddCell().SetValue(category)
		row.AddCell().SetValue(strings.Join(l.Images, ","))
		row.AddCell().SetValue(l.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(l.UpdatedAt.Format("2006-01-02 15:04:05"))
	}

	return file.Write(w)
}
