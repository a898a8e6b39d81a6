package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	applaptop "github.com/xiebiao/techhaven/internal/application/laptop"
	"github.com/xiebiao/techhaven/internal/interface/http/dto"
	apperrors "github.com/xiebiao/techhaven/pkg/errors"
	"github.com/xiebiao/techhaven/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LaptopHandler 商品HTTP处理器
type LaptopHandler struct {
	listUseCase     *applaptop.ListLaptopsUseCase
	getUseCase      *applaptop.GetLaptopUseCase
	createUseCase   *applaptop.CreateLaptopUseCase
	updateUseCase   *applaptop.UpdateLaptopUseCase
	deleteUseCase   *applaptop.DeleteLaptopUseCase
	setStockUseCase *applaptop.SetStockUseCase
	exportUseCase   *applaptop.ExportLaptopsUseCase
}

// NewLaptopHandler 创建商品处理器
func NewLaptopHandler(
	listUseCase *applaptop.ListLaptopsUseCase,
	getUseCase *applaptop.GetLaptopUseCase,
	createUseCase *applaptop.CreateLaptopUseCase,
	updateUseCase *applaptop.UpdateLaptopUseCase,
	deleteUseCase *applaptop.DeleteLaptopUseCase,
	setStockUseCase *applaptop.SetStockUseCase,
	exportUseCase *applaptop.ExportLaptopsUseCase,
) *LaptopHandler {
	return &LaptopHandler{
		listUseCase:     listUseCase,
		getUseCase:      getUseCase,
		createUseCase:   createUseCase,
		updateUseCase:   updateUseCase,
		deleteUseCase:   deleteUseCase,
		setStockUseCase: setStockUseCase,
		exportUseCase:   exportUseCase,
	}
}

// List 商品列表
// @Summary      商品列表
// @Description  支持品牌/类型/价格区间/分类/库存/评分过滤，search 模糊匹配名称与描述，
// @Description  select 字段投影，sort 多字段排序（-前缀降序），page/limit 分页（limit 最大100）
// @Tags         商品
// @Produce      json
// @Param        brand      query string false "品牌，逗号分隔" example(Dell,Apple)
// @Param        type       query string false "类型，逗号分隔"
// @Param        minPrice   query int    false "最低价（分）"
// @Param        maxPrice   query int    false "最高价（分）"
// @Param        category   query int    false "分类ID"
// @Param        inStock    query bool   false "仅有货"
// @Param        minRating  query number false "最低评分"
// @Param        search     query string false "关键字"
// @Param        select     query string false "返回字段，逗号分隔"
// @Param        sort       query string false "排序，如 -price,name"
// @Param        page       query int    false "页码" default(1)
// @Param        limit      query int    false "每页条数" default(12)
// @Success      200 {object} response.Response{data=response.ListData{data=[]dto.LaptopResponse}}
// @Failure      400 {object} response.ErrorBody "查询参数非法"
// @Router       /api/laptops [get]
func (h *LaptopHandler) List(c *gin.Context) {
	result, err := h.listUseCase.Execute(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		response.Error(c, err)
		return
	}
	q := result.Query
	response.Success(c, response.NewListData(
		dto.NewLaptopList(result.Laptops, q.Fields),
		len(result.Laptops), result.Total, q.Page, q.Limit,
	))
}

// Get 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.LaptopResponse}
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Router       /api/laptops/{id} [get]
func (h *LaptopHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	l, err := h.getUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewLaptopResponse(l))
}

// Create 创建商品
// @Summary      创建商品
// @Description  JSON 或 multipart/form-data；multipart 时图片文件放在 images 字段，
// @Description  图片保存与写库按Saga执行，失败时删除已保存的图片
// @Tags         商品
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateLaptopRequest true "商品信息"
// @Success      201 {object} response.Response{data=dto.LaptopResponse}
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      403 {object} response.ErrorBody "需要管理员权限"
// @Router       /api/laptops [post]
func (h *LaptopHandler) Create(c *gin.Context) {
	var req dto.CreateLaptopRequest
	uploads, ok := bindLaptop(c, &req)
	if !ok {
		return
	}

	l, err := h.createUseCase.Execute(c.Request.Context(), applaptop.LaptopInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Type:        req.Type,
		Specs:       req.DomainSpecs(),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		Features:    req.Features,
		CategoryID:  req.CategoryID,
	}, uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewLaptopResponse(l))
}

// Update 更新商品
// @Summary      更新商品
// @Description  只修改请求中出现的字段；上传的图片追加到已有图片之后
// @Tags         商品
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                      true "商品ID"
// @Param        request body dto.UpdateLaptopRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.LaptopResponse}
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Router       /api/laptops/{id} [put]
func (h *LaptopHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLaptopRequest
	uploads, ok := bindLaptop(c, &req)
	if !ok {
		return
	}

	l, err := h.updateUseCase.Execute(c.Request.Context(), id, applaptop.LaptopPatch{
		Name:        req.Name,
		Brand:       req.Brand,
		Type:        req.Type,
		Specs:       req.DomainSpecs(),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Images:      req.Images,
		Features:    req.Features,
		CategoryID:  req.CategoryID,
	}, uploads)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewLaptopResponse(l))
}

// Delete 删除商品（软删除）
// @Summary      删除商品
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Router       /api/laptops/{id} [delete]
func (h *LaptopHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.deleteUseCase.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// SetStock 调整库存
// @Summary      调整库存
// @Description  直接设置库存数量，可售状态随之更新
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                  true "商品ID"
// @Param        request body dto.SetStockRequest true "库存"
// @Success      200 {object} response.Response{data=dto.LaptopResponse}
// @Failure      400 {object} response.ErrorBody "参数错误"
// @Failure      404 {object} response.ErrorBody "商品不存在"
// @Router       /api/laptops/{id}/stock [put]
func (h *LaptopHandler) SetStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.SetStockRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.setStockUseCase.Execute(c.Request.Context(), id, *req.Stock)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewLaptopResponse(l))
}

// Export 导出全部商品为Excel
// @Summary      导出商品
// @Tags         商品
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200 {file} binary
// @Router       /api/laptops/export [get]
func (h *LaptopHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportUseCase.Execute(c.Request.Context(), &buf); err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("laptops-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// bindLaptop JSON直接绑定；multipart时解析表单字段并收集图片文件
func bindLaptop(c *gin.Context, req interface{}) ([]applaptop.Upload, bool) {
	if c.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil, bindJSON(c, req)
	}

	form, err := c.MultipartForm()
	if err == nil {
		err = decodeForm(form.Value, req)
	}
	if err == nil {
		err = binding.Validator.ValidateStruct(req)
	}
	if err != nil {
		response.Error(c, apperrors.ErrBindError.WithMessage("参数错误: "+err.Error()))
		return nil, false
	}

	files := form.File["images"]
	uploads := make([]applaptop.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, applaptop.Upload{
			Filename: fh.Filename,
			Open:     openFile(fh),
		})
	}
	return uploads, true
}

func openFile(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

// decodeForm 表单字段按JSON字段名映射到请求结构
// specs/features/images 可以是JSON字符串，features/images 也可以重复提交
func decodeForm(values map[string][]string, dst interface{}) error {
	raw := make(map[string]json.RawMessage, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		v := strings.TrimSpace(vals[0])
		switch key {
		case "specs", "features", "images":
			if strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[") {
				if !json.Valid([]byte(v)) {
					return fmt.Errorf("%s 不是合法的JSON", key)
				}
				raw[key] = json.RawMessage(v)
				continue
			}
			if key == "specs" {
				return fmt.Errorf("specs 必须为JSON对象")
			}
			b, _ := json.Marshal(vals)
			raw[key] = b
		case "price", "stock", "categoryId":
			if v == "" {
				continue
			}
			if !json.Valid([]byte(v)) {
				return fmt.Errorf("%s 必须为数字", key)
			}
			raw[key] = json.RawMessage(v)
		default:
			b, _ := json.Marshal(v)
			raw[key] = b
		}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
