package dto

type ActualizarConfiguracionRequest struct {
	NombreEmpresa              *string `json:"nombre_empresa"               validate:"omitempty,min=2,max=100"`
	Moneda                     *string `json:"moneda"                       validate:"omitempty,max=5"`
	PorcentajeComisionVendedor *int    `json:"porcentaje_comision_vendedor" validate:"omitempty,min=0,max=100"`
	PorcentajeComisionCobrador *int    `json:"porcentaje_comision_cobrador" validate:"omitempty,min=0,max=100"`
	PeriodoComision            *string `json:"periodo_comision"             validate:"omitempty,oneof=mensual quincenal"`
}

type ConfiguracionResponse struct {
	NombreEmpresa              string `json:"nombre_empresa"`
	Moneda                     string `json:"moneda"`
	PorcentajeComisionVendedor int    `json:"porcentaje_comision_vendedor"`
	PorcentajeComisionCobrador int    `json:"porcentaje_comision_cobrador"`
	PeriodoComision            string `json:"periodo_comision"`
}
