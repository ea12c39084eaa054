// Package domain holds the wire types exchanged with the MoDiesel API.
// Field tags follow the backend's JSON contract; optional associations are
// pointers so an absent supplier/vehicle/invoice stays distinguishable from a
// zero id.
package domain

type Client struct {
	ID           int    `json:"id,omitempty"`
	RUC          string `json:"ruc"`
	BusinessName string `json:"razonSocial"`
	Active       bool   `json:"estado"`
	Email        string `json:"correo"`
	Phone        string `json:"telefono"`
}

type Vehicle struct {
	ID       int    `json:"id,omitempty"`
	Plate    string `json:"placa"`
	Make     string `json:"marca"`
	Model    string `json:"modelo"`
	Year     int    `json:"año"`
	ClientID *int   `json:"clienteId,omitempty"`
}

type Supplier struct {
	ID      int    `json:"id,omitempty"`
	RUC     string `json:"ruc"`
	Name    string `json:"nombre"`
	Email   string `json:"correo"`
	Phone   string `json:"telefono"`
	Address string `json:"direccion"`
}

type Product struct {
	ID          int     `json:"id,omitempty"`
	Name        string  `json:"nombre"`
	Make        string  `json:"marca"`
	Description string  `json:"descripcion"`
	UnitPrice   float64 `json:"precio"`
	Stock       int     `json:"stock"`
	SupplierID  *int    `json:"proveedorId,omitempty"`
}

type SparePart struct {
	ID         int     `json:"id,omitempty"`
	Name       string  `json:"nombre"`
	Make       string  `json:"marca"`
	UnitPrice  float64 `json:"precio"`
	Stock      int     `json:"stock"`
	SupplierID *int    `json:"proveedorId,omitempty"`
	VehicleID  *int    `json:"vehiculoId,omitempty"`
}

// Movement is one inventory entry/exit record.
type Movement struct {
	ID          int     `json:"id,omitempty"`
	Code        string  `json:"codigo"`
	Name        string  `json:"nombre"`
	Make        string  `json:"marca"`
	Quantity    int     `json:"cantidad"`
	Price       float64 `json:"precio"`
	UnitPrice   float64 `json:"precioUnitario"`
	Kind        string  `json:"tipoMovimiento"` // ENTRADA | SALIDA
	Description string  `json:"descripcionMovimiento"`
	SupplierID  *int    `json:"proveedorId,omitempty"`
}

type SaleLine struct {
	ID        int      `json:"id,omitempty"`
	ProductID int      `json:"productoId"`
	Product   *Product `json:"producto,omitempty"`
	Quantity  int      `json:"cantidad"`
	Subtotal  float64  `json:"subtotal"`
}

type Invoice struct {
	ID       int     `json:"id,omitempty"`
	Number   string  `json:"numero"`
	IssuedAt string  `json:"fechaEmision"`
	Total    float64 `json:"total"`
}

type Sale struct {
	ID         int        `json:"id,omitempty"`
	Date       string     `json:"fecha"` // RFC 3339, assigned at submit time
	Total      float64    `json:"total"`
	ClientID   int        `json:"clienteId"`
	Client     *Client    `json:"cliente,omitempty"`
	EmployeeID int        `json:"empleadoId"`
	Lines      []SaleLine `json:"detalles"`
	Invoice    *Invoice   `json:"factura,omitempty"`
}

type Image struct {
	ID         int    `json:"id,omitempty"`
	Name       string `json:"nombre"`
	URL        string `json:"url"`
	Kind       string `json:"tipo"`
	UploadedAt string `json:"fechaSubida"`
	UserID     *int   `json:"usuarioId,omitempty"`
}
