package laptop

import (
	"context"
	"io"

	"github.com/xiebiao/techhaven/internal/domain/laptop"
	"github.com/xiebiao/techhaven/internal/infrastructure/export"
)

// ExportLaptopsUseCase 导出全部商品为Excel
type ExportLaptopsUseCase struct {
	laptopRepo laptop.Repository
}

// NewExportLaptopsUseCase 创建导出用例
func NewExportLaptopsUseCase(laptopRepo laptop.Repository) *ExportLaptopsUseCase {
	return &ExportLaptopsUseCase{laptopRepo: laptopRepo}
}

// Execute 查询全部商品写入w
func (uc *ExportLaptopsUseCase) Execute(ctx context.Context, w io.Writer) error {
	laptops, err := uc.laptopRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	return export.WriteLaptops(w, laptops)
}
