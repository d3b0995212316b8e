package core

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
//   - Catalog 错误：EMPTY_CORPUS, UNAVAILABLE
//   - Recommend 错误：INVALID_INPUT
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "EMPTY_CORPUS"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "catalog", "recommend"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 按 Module + Code 比较，使 errors.Is 对同类错误生效。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError（支持 %w 包装），如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	for err != nil {
		if domainErr, ok := err.(*DomainError); ok {
			return domainErr
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"
	ErrorCodeNotSupported  = "NOT_SUPPORTED"
	ErrorCodeUnavailable   = "UNAVAILABLE"
	ErrorCodeInvalidInput  = "INVALID_INPUT"
	ErrorCodeInternalError = "INTERNAL_ERROR"
	ErrorCodeEmptyCorpus   = "EMPTY_CORPUS" // 目录为空，无法拟合向量空间
)

// 模块名称常量
const (
	ModuleStore     = "store"
	ModuleCatalog   = "catalog"
	ModuleVector    = "vector"
	ModuleRecommend = "recommend"
	ModuleFilter    = "filter"
)

var (
	// ErrEmptyCorpus 表示目录快照为空。调用方应直接返回空结果。
	ErrEmptyCorpus = NewDomainError(ModuleCatalog, ErrorCodeEmptyCorpus, "catalog: empty corpus")

	// ErrMissingUser 表示请求缺少用户身份，应在上游鉴权时拒绝。
	ErrMissingUser = NewDomainError(ModuleRecommend, ErrorCodeInvalidInput, "recommend: user id is required")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}

// IsEmptyCorpus 检查错误是否为 EMPTY_CORPUS
func IsEmptyCorpus(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeEmptyCorpus
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
