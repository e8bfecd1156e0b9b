package ticker

// Message types exchanged with the ticker server.
const (
	SrvAuthReqMsg    = "SrvAuthReqMsg"
	SrvAuthCfmMsg    = "SrvAuthCfmMsg"
	SrvPingReqMsg    = "SrvPingReqMsg"
	SrvPingCfmMsg    = "SrvPingCfmMsg"
	DispTickerReqMsg = "DispTickerReqMsg"
	DispTickerCfmMsg = "DispTickerCfmMsg"
)

// DispTickerReqMsg fields:
//
//	0 type, 1 from, 2 to, 3 seq, 4 text, 5..6 unused, 7 flag
const (
	tickerFrom = 1
	tickerSeq  = 3
	tickerText = 4
	tickerFlag = 7

	tickerFields = 8
)

func authRequest(seq, user, secret, device string) []string {
	return []string{SrvAuthReqMsg, "srv", "UNDEF", seq, user, secret, device}
}

func pingRequest(device, seq string) []string {
	return []string{SrvPingReqMsg, "Srv", device, seq}
}

func tickerConfirm(req []string, device string) []string {
	return []string{DispTickerCfmMsg, "Srv", req[tickerFrom], req[tickerSeq], "SUCCESS", device, "UNSPEC"}
}
