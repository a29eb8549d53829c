package chain

// assetManagerABI mirrors the AssetManager methods the tool calls. floor and
// room are declared narrower than uint256 to exercise argument coercion.
const assetManagerABI = `[
	{"type":"function","name":"registerAsset","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"name","type":"string"},
		{"name":"building","type":"string"},
		{"name":"floor","type":"uint8"},
		{"name":"room","type":"uint16"},
		{"name":"brand","type":"string"},
		{"name":"model","type":"string"},
		{"name":"ipfsHash","type":"string"},
		{"name":"globalId","type":"string"},
		{"name":"positionId","type":"string"},
		{"name":"physicalId","type":"string"}]},
	{"type":"function","name":"reportFault","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"assetId","type":"uint256"},{"name":"description","type":"string"}]},
	{"type":"function","name":"startMaintenance","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"assetId","type":"uint256"},{"name":"comment","type":"string"}]},
	{"type":"function","name":"completeMaintenance","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"assetId","type":"uint256"},{"name":"comment","type":"string"}]},
	{"type":"function","name":"setPaymentManager","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"pm","type":"address"}]},
	{"type":"function","name":"adjust","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"delta","type":"int8"}]}
]`
