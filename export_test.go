package api

// Test-only exports for internal functions.
var (
	HasParamTags = hasParamTags
	HasBodyField = hasBodyField

	TypeToSchema        = typeToSchema
	StructToSchema      = structToSchema
	ParamsToSchema      = paramsToSchema
	JSONFieldName       = jsonFieldName
	ApplyConstraintTags = applyConstraintTags
	CoerceValue         = coerce

	TemplateParams = templateParams
	SetFieldValue  = setFieldValue

	GenerateOperationID = generateOperationID
	ToOpenAPIPath       = toOpenAPIPath
)
