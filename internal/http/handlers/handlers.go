// Handler wiring.
//
// Handlers groups the HTTP endpoints for the contract pipeline, database
// uploads, lifestyle ingestion, and hotel reads. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
package handlers

// Handlers groups all HTTP endpoints behind their service dependencies.
type Handlers struct {
	contractSvc  ContractService
	uploadSvc    UploadService
	lifestyleSvc LifestyleBuilder
	hotelSvc     HotelService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(contractSvc ContractService, uploadSvc UploadService, lifestyleSvc LifestyleBuilder, hotelSvc HotelService) *Handlers {
	return &Handlers{
		contractSvc:  contractSvc,
		uploadSvc:    uploadSvc,
		lifestyleSvc: lifestyleSvc,
		hotelSvc:     hotelSvc,
	}
}
