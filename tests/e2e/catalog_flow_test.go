//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"warehouse-catalog/internal/app/catalog/entity"
	"warehouse-catalog/internal/app/catalog/handler"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// BaseURL - адрес запущенного catalog-сервиса
	// Для E2E тестов сервис должен быть запущен через docker-compose
	BaseURL = "http://localhost:8081"
)

// adminToken подписывает JWT с ролью admin тем же секретом, что и сервис
func adminToken(t *testing.T) string {
	t.Helper()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "your-secret-key-change-this-in-production"
	}

	claims := handler.JWTClaims{
		UserID:   "e2e-test-user",
		Email:    "e2e@example.com",
		RoleName: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, client *http.Client, method, path string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, BaseURL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminToken(t))

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

// TestFullCatalogFlow тестирует полный цикл работы с каталогом:
// 1. Создание категории
// 2. Получение всех категорий
// 3. Создание товара в категории (снимок категории)
// 4. Получение товара
// 5. Обновление товара (событие в Kafka)
// 6. Удаление товара
// 7. Удаление категории
func TestFullCatalogFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	// ==================== Step 1: Create Category ====================
	t.Log("Step 1: Creating category")

	categoryName := fmt.Sprintf("Test Category %d", time.Now().UnixNano())
	resp := doRequest(t, client, http.MethodPost, "/categories", entity.CreateCategoryRequest{
		Name:        categoryName,
		Description: "Created by E2E tests",
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode, "Category creation should succeed")

	var category entity.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&category))
	assert.Equal(t, categoryName, category.Name)
	assert.NotZero(t, category.ID)

	categoryID := strconv.FormatInt(category.ID, 10)
	t.Logf("Created category: %s (ID: %s)", category.Name, categoryID)

	// ==================== Step 2: Get All Categories ====================
	t.Log("Step 2: Getting all categories")

	resp = doRequest(t, client, http.MethodGet, "/categories", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var categoriesResponse entity.CategoryListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&categoriesResponse))
	assert.GreaterOrEqual(t, categoriesResponse.Total, 1)

	// ==================== Step 3: Create Product ====================
	t.Log("Step 3: Creating product")

	productName := fmt.Sprintf("Test Product %d", time.Now().UnixNano())
	resp = doRequest(t, client, http.MethodPost, "/products", entity.CreateProductRequest{
		Name:        productName,
		Description: "This is a test product created by E2E tests",
		CategoryID:  category.ID,
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode, "Product creation should succeed")

	var product entity.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&product))
	assert.Equal(t, productName, product.Name)
	assert.Equal(t, category.ID, product.Category.ID)
	assert.Equal(t, categoryName, product.Category.Name)

	productID := strconv.FormatInt(product.ID, 10)
	t.Logf("Created product: %s (ID: %s)", product.Name, productID)

	// ==================== Step 4: Get Product ====================
	t.Log("Step 4: Getting product with category snapshot")

	resp = doRequest(t, client, http.MethodGet, "/products/"+productID, nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched entity.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&fetched))
	assert.Equal(t, product.ID, fetched.ID)
	assert.Equal(t, categoryName, fetched.Category.Name)

	// ==================== Step 5: Update Product ====================
	t.Log("Step 5: Updating product (triggers Kafka event)")

	resp = doRequest(t, client, http.MethodPut, "/products/"+productID, entity.UpdateProductRequest{
		Name:        productName,
		Description: "Updated by E2E tests",
		CategoryID:  category.ID,
	})
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "Product update should succeed")

	var updatedProduct entity.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updatedProduct))
	assert.Equal(t, "Updated by E2E tests", updatedProduct.Description)

	// ==================== Step 6: Delete Product ====================
	t.Log("Step 6: Deleting product")

	resp = doRequest(t, client, http.MethodDelete, "/products/"+productID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "Product deletion should succeed")

	resp = doRequest(t, client, http.MethodGet, "/products/"+productID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "Product should not be found after deletion")

	// ==================== Step 7: Delete Category ====================
	t.Log("Step 7: Deleting category")

	resp = doRequest(t, client, http.MethodDelete, "/categories/"+categoryID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "Category deletion should succeed")

	resp = doRequest(t, client, http.MethodGet, "/categories/"+categoryID, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "Category should not be found after deletion")

	t.Log("Full catalog flow completed successfully!")
}

// TestDuplicateNames проверяет регистронезависимую уникальность имен
func TestDuplicateNames(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	categoryName := fmt.Sprintf("Dup Category %d", time.Now().UnixNano())

	resp := doRequest(t, client, http.MethodPost, "/categories", entity.CreateCategoryRequest{Name: categoryName})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var category entity.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&category))
	resp.Body.Close()

	defer func() {
		resp := doRequest(t, client, http.MethodDelete, "/categories/"+strconv.FormatInt(category.ID, 10), nil)
		resp.Body.Close()
	}()

	// Повтор с другим регистром отклоняется
	resp = doRequest(t, client, http.MethodPost, "/categories", entity.CreateCategoryRequest{
		Name: strings.ToUpper(categoryName),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// TestCategoryValidation тестирует валидацию при создании категории
func TestCategoryValidation(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	testCases := []struct {
		name           string
		request        entity.CreateCategoryRequest
		expectedStatus int
	}{
		{
			name:           "Empty name",
			request:        entity.CreateCategoryRequest{Name: ""},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Name too short",
			request:        entity.CreateCategoryRequest{Name: "A"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, client, http.MethodPost, "/categories", tc.request)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}

// TestProductValidation тестирует валидацию при создании товара
func TestProductValidation(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	testCases := []struct {
		name           string
		request        entity.CreateProductRequest
		expectedStatus int
	}{
		{
			name:           "Empty name",
			request:        entity.CreateProductRequest{Name: "", CategoryID: 1},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing category",
			request:        entity.CreateProductRequest{Name: "Valid Name"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Non-existent category",
			request: entity.CreateProductRequest{
				Name:       fmt.Sprintf("Unique Name %d", time.Now().UnixNano()),
				CategoryID: 999999999,
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doRequest(t, client, http.MethodPost, "/products", tc.request)
			defer resp.Body.Close()

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}

// TestInvalidID тестирует обработку невалидных идентификаторов
func TestInvalidID(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/categories/not-a-number"},
		{http.MethodDelete, "/categories/0"},
		{http.MethodGet, "/products/not-a-number"},
		{http.MethodDelete, "/products/-5"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			resp := doRequest(t, client, endpoint.method, endpoint.path, nil)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

// TestUnauthorizedAccess проверяет что записи без токена отклоняются
func TestUnauthorizedAccess(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	body, _ := json.Marshal(entity.CreateCategoryRequest{Name: "Should Fail"})
	resp, err := client.Post(BaseURL+"/categories", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestHealthCheck проверяет что сервис отвечает
func TestHealthCheck(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}

	resp, err := client.Get(BaseURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
