package handler

import (
	"github.com/gin-gonic/gin"

	appcategory "github.com/xiebiao/techhaven/internal/application/category"
	"github.com/xiebiao/techhaven/internal/interface/http/dto"
	"github.com/xiebiao/techhaven/pkg/response"
)

// CategoryHandler 分类HTTP处理器
type CategoryHandler struct {
	listUseCase   *appcategory.ListCategoriesUseCase
	getUseCase    *appcategory.GetCategoryUseCase
	createUseCase *appcategory.CreateCategoryUseCase
	updateUseCase *appcategory.UpdateCategoryUseCase
	deleteUseCase *appcategory.DeleteCategoryUseCase
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(
	listUseCase *appcategory.ListCategoriesUseCase,
	getUseCase *appcategory.GetCategoryUseCase,
	createUseCase *appcategory.CreateCategoryUseCase,
	updateUseCase *appcategory.UpdateCategoryUseCase,
	deleteUseCase *appcategory.DeleteCategoryUseCase,
) *CategoryHandler {
	return &CategoryHandler{
		listUseCase:   listUseCase,
		getUseCase:    getUseCase,
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
	}
}

// List 分类列表
// @Summary      分类列表
// @Tags         分类
// @Produce      json
// @Param        tree query bool false "按层级返回"
// @Success      200 {object} response.Response{data=[]dto.CategoryResponse}
// @Router       /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.listUseCase.Execute(c.Request.Context(), c.Query("tree") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCategoryList(categories))
}

// Get 分类详情
// @Summary      分类详情
// @Description  按ID或slug查询，返回直接子分类和分类下的商品
// @Tags         分类
// @Produce      json
// @Param        id path string true "分类ID或slug"
// @Success      200 {object} response.Response{data=dto.CategoryDetailResponse}
// @Failure      404 {object} response.ErrorBody "分类不存在"
// @Router       /api/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	detail, err := h.getUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCategoryDetail(detail.Category, detail.Laptops))
}

// Create 创建分类（管理员）
// @Summary      创建分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateCategoryRequest true "分类"
// @Success      201 {object} response.Response{data=dto.CategoryResponse}
// @Failure      404 {object} response.ErrorBody "父分类不存在"
// @Failure      409 {object} response.ErrorBody "分类名已存在"
// @Router       /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.createUseCase.Execute(c.Request.Context(), appcategory.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewCategoryResponse(cat))
}

// Update 更新分类（管理员）
// @Summary      更新分类
// @Description  parentId 为0表示改为根分类；不能挂到自身或子分类下
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                        true "分类ID"
// @Param        request body dto.UpdateCategoryRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.CategoryResponse}
// @Failure      400 {object} response.ErrorBody "层级成环"
// @Failure      404 {object} response.ErrorBody "分类不存在"
// @Router       /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.updateUseCase.Execute(c.Request.Context(), id, appcategory.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCategoryResponse(cat))
}

// Delete 删除分类（管理员）
// @Summary      删除分类
// @Description  存在子分类时拒绝；分类下商品移出分类
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.ErrorBody "存在子分类"
// @Failure      404 {object} response.ErrorBody "分类不存在"
// @Router       /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
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
