package dto

import (
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
)

// CreateProductRequest for POST /catalog/products.
type CreateProductRequest struct {
	Code        string `json:"code" binding:"required"`
	PrimaryName string `json:"primaryName" binding:"required"`
	ProgramCode string `json:"programCode" binding:"required"`
	Strength    string `json:"strength"`
	Unit        string `json:"unit"`
	IsKit       bool   `json:"isKit"`
	IsBasic     bool   `json:"isBasic"`
}

// ToProduct converts the request to a domain product.
func (r CreateProductRequest) ToProduct() *product.Product {
	p := product.New(r.Code, r.PrimaryName)
	p.ProgramCode = r.ProgramCode
	p.Strength = r.Strength
	p.Unit = r.Unit
	p.IsKit = r.IsKit
	p.IsBasic = r.IsBasic
	return p
}

// CreateProgramRequest for POST /catalog/programs.
type CreateProgramRequest struct {
	Code             string `json:"code" binding:"required"`
	Name             string `json:"name" binding:"required"`
	ParentCode       string `json:"parentCode"`
	SupportEmergency bool   `json:"supportEmergency"`
}

// ToProgram converts the request to a domain program.
func (r CreateProgramRequest) ToProgram() *program.Program {
	p := program.New(r.Code, r.Name)
	p.ParentCode = r.ParentCode
	p.SupportEmergency = r.SupportEmergency
	return p
}
