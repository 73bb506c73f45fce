package main

// Thin response shapes decoded from the server API. Fields not shown by any
// command are omitted.

type apiAsset struct {
	AssetTag       string `json:"assetTag"`
	LifecycleState string `json:"lifecycleState"`
	CurrentSite    string `json:"currentSite"`
	Location       string `json:"location"`
	Floor          string `json:"floor"`
	CurrentDesk    string `json:"currentDesk"`
	DeployedToUser string `json:"deployedToUser"`
	SerialNumber   string `json:"serialNumber"`
	Manufacturer   string `json:"manufacturer"`
	Model          string `json:"model"`
	UpdatedBy      string `json:"updatedBy"`
}

type apiAssetList struct {
	Assets []apiAsset `json:"assets"`
}

type apiEvent struct {
	ID        string `json:"id"`
	AssetTag  string `json:"assetTag"`
	EventType string `json:"eventType"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

type apiEventList struct {
	Events        []apiEvent `json:"events"`
	NextPageToken string     `json:"nextPageToken"`
}

type apiTransfer struct {
	ID             string `json:"id"`
	AssetTag       string `json:"assetTag"`
	FromSite       string `json:"fromSite"`
	ToSite         string `json:"toSite"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"trackingNumber"`
	State          string `json:"state"`
}

type apiTransferList struct {
	Transfers []apiTransfer `json:"transfers"`
}

type apiBatch struct {
	ID                   string `json:"id"`
	BatchCode            string `json:"batchCode"`
	PickupVendor         string `json:"pickupVendor"`
	PickupManifestNumber string `json:"pickupManifestNumber"`
	FinalizedAt          string `json:"finalizedAt"`
}
