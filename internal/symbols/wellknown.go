package symbols

// wellKnown maps major trading symbols to their provider identifiers.
// Checked before the catalog and never overridden by it: catalog entries
// for these symbols frequently collide with small tokens reusing the ticker.
var wellKnown = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"USDT":  "tether",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"USDC":  "usd-coin",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
	"TON":   "the-open-network",
	"ADA":   "cardano",
	"AVAX":  "avalanche-2",
	"SHIB":  "shiba-inu",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"TRX":   "tron",
	"MATIC": "matic-network",
	"BCH":   "bitcoin-cash",
	"LTC":   "litecoin",
	"NEAR":  "near",
	"UNI":   "uniswap",
	"ICP":   "internet-computer",
	"APT":   "aptos",
	"XLM":   "stellar",
	"ETC":   "ethereum-classic",
	"FIL":   "filecoin",
	"ATOM":  "cosmos",
	"ARB":   "arbitrum",
	"OP":    "optimism",
	"INJ":   "injective-protocol",
	"SUI":   "sui",
	"SEI":   "sei-network",
	"PEPE":  "pepe",
	"WIF":   "dogwifcoin",
	"BONK":  "bonk",
	"RNDR":  "render-token",
	"GRT":   "the-graph",
	"IMX":   "immutable-x",
	"HBAR":  "hedera-hashgraph",
	"VET":   "vechain",
	"MKR":   "maker",
	"AAVE":  "aave",
	"LDO":   "lido-dao",
	"ALGO":  "algorand",
	"QNT":   "quant-network",
	"EGLD":  "elrond-erd-2",
	"FTM":   "fantom",
	"SAND":  "the-sandbox",
	"MANA":  "decentraland",
	"XMR":   "monero",
	"KAS":   "kaspa",
	"TIA":   "celestia",
	"JUP":   "jupiter-exchange-solana",
	"STX":   "blockstack",
	"RUNE":  "thorchain",
	"CRV":   "curve-dao-token",
}
