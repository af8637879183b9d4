package params

// withGasParams registers protocol parameters by (name, hardfork) for
// ParamAtHardfork. The interpreter, gas table and header codec in core/vm
// and core/types use their own constants and do not read these entries.
// Values are the
// real Ethereum mainnet constants at the hardfork each one last changed,
// following the naming convention spec section 4.4 describes for opcodes:
// baseName.lower() + "Gas".
func (m *HardforkManager) withGasParams() *HardforkManager {
	return m.
		// SSTORE family (4.4's hardest opcode: four era-dependent regimes).
		WithParam("sstoreSetGas", "Frontier", 20000).
		WithParam("sstoreResetGas", "Frontier", 5000).
		WithParam("sstoreClearRefundGas", "Frontier", 15000).
		WithParam("sstoreClearRefundGas", "London", 4800). // EIP-3529 refund cut
		WithParam("sstoreSentryEIP2200Gas", "Istanbul", 2300).
		WithParam("coldSloadGas", "Berlin", 2100).
		WithParam("warmStorageReadGas", "Berlin", 100).
		WithParam("selfdestructRefundGas", "Frontier", 24000).
		WithParam("selfdestructRefundGas", "London", 0). // EIP-3529 removed the refund

		// Access list (EIP-2929/2930) address/slot access costs.
		WithParam("coldAccountAccessGas", "Berlin", 2600).
		WithParam("accessListAddressGas", "Berlin", 2400).
		WithParam("accessListStorageKeyGas", "Berlin", 1900).

		// Call family.
		WithParam("callGas", "Frontier", 40).
		WithParam("callGas", "TangerineWhistle", 700).
		WithParam("callValueTransferGas", "Frontier", 9000).
		WithParam("callNewAccountGas", "Frontier", 25000).
		WithParam("callStipendGas", "Frontier", 2300).
		WithParam("callCreateDepth", "Frontier", 1024).

		// CREATE/CREATE2.
		WithParam("createGas", "Frontier", 32000).
		WithParam("createDataGas", "Frontier", 200).
		WithParam("keccak256WordGas", "Frontier", 6). // also CREATE2's hashing cost
		WithParam("maxInitCodeSize", "Shanghai", 49152).

		// Logs.
		WithParam("logGas", "Frontier", 375).
		WithParam("logTopicGas", "Frontier", 375).
		WithParam("logDataGas", "Frontier", 8).

		// Memory/copy.
		WithParam("memoryGas", "Frontier", 3).
		WithParam("quadCoeffDiv", "Frontier", 512).
		WithParam("copyGas", "Frontier", 3).

		// Simple opcode tiers (Gzero/Gbase/Gverylow/Glow/Gmid/Ghigh).
		WithParam("stopGas", "Frontier", 0).
		WithParam("addGas", "Frontier", 3).
		WithParam("mulGas", "Frontier", 5).
		WithParam("subGas", "Frontier", 3).
		WithParam("divGas", "Frontier", 5).
		WithParam("sdivGas", "Frontier", 5).
		WithParam("modGas", "Frontier", 5).
		WithParam("smodGas", "Frontier", 5).
		WithParam("addmodGas", "Frontier", 8).
		WithParam("mulmodGas", "Frontier", 8).
		WithParam("signextendGas", "Frontier", 5).
		WithParam("ltGas", "Frontier", 3).
		WithParam("gtGas", "Frontier", 3).
		WithParam("sltGas", "Frontier", 3).
		WithParam("sgtGas", "Frontier", 3).
		WithParam("eqGas", "Frontier", 3).
		WithParam("iszeroGas", "Frontier", 3).
		WithParam("andGas", "Frontier", 3).
		WithParam("orGas", "Frontier", 3).
		WithParam("xorGas", "Frontier", 3).
		WithParam("notGas", "Frontier", 3).
		WithParam("byteGas", "Frontier", 3).
		WithParam("shlGas", "Constantinople", 3).
		WithParam("shrGas", "Constantinople", 3).
		WithParam("sarGas", "Constantinople", 3).
		WithParam("clzGas", "Osaka", 5).
		WithParam("keccak256Gas", "Frontier", 30).
		WithParam("addressGas", "Frontier", 2).
		WithParam("balanceGas", "Frontier", 20).
		WithParam("balanceGas", "TangerineWhistle", 400).
		WithParam("balanceGas", "Istanbul", 700).
		WithParam("originGas", "Frontier", 2).
		WithParam("callerGas", "Frontier", 2).
		WithParam("callvalueGas", "Frontier", 2).
		WithParam("calldataloadGas", "Frontier", 3).
		WithParam("calldatasizeGas", "Frontier", 2).
		WithParam("calldatacopyGas", "Frontier", 3).
		WithParam("codesizeGas", "Frontier", 2).
		WithParam("codecopyGas", "Frontier", 3).
		WithParam("gaspriceGas", "Frontier", 2).
		WithParam("extcodesizeGas", "Frontier", 20).
		WithParam("extcodesizeGas", "TangerineWhistle", 700).
		WithParam("extcodecopyGas", "Frontier", 20).
		WithParam("extcodecopyGas", "TangerineWhistle", 700).
		WithParam("returndatasizeGas", "Byzantium", 2).
		WithParam("returndatacopyGas", "Byzantium", 3).
		WithParam("extcodehashGas", "Constantinople", 400).
		WithParam("extcodehashGas", "Istanbul", 700).
		WithParam("blockhashGas", "Frontier", 20).
		WithParam("coinbaseGas", "Frontier", 2).
		WithParam("timestampGas", "Frontier", 2).
		WithParam("numberGas", "Frontier", 2).
		WithParam("difficultyGas", "Frontier", 2).
		WithParam("gaslimitGas", "Frontier", 2).
		WithParam("chainidGas", "Istanbul", 2).
		WithParam("selfbalanceGas", "Istanbul", 5).
		WithParam("basefeeGas", "London", 2).
		WithParam("blobhashGas", "Cancun", 3).
		WithParam("blobbasefeeGas", "Cancun", 2).
		WithParam("popGas", "Frontier", 2).
		WithParam("mloadGas", "Frontier", 3).
		WithParam("mstoreGas", "Frontier", 3).
		WithParam("mstore8Gas", "Frontier", 3).
		WithParam("sloadGas", "Frontier", 50).
		WithParam("sloadGas", "TangerineWhistle", 200).
		WithParam("sloadGas", "Istanbul", 800).
		WithParam("jumpGas", "Frontier", 8).
		WithParam("jumpiGas", "Frontier", 10).
		WithParam("pcGas", "Frontier", 2).
		WithParam("msizeGas", "Frontier", 2).
		WithParam("gasGas", "Frontier", 2).
		WithParam("jumpdestGas", "Frontier", 1).
		WithParam("tloadGas", "Cancun", 100).
		WithParam("tstoreGas", "Cancun", 100).
		WithParam("mcopyGas", "Cancun", 3).
		WithParam("pushGas", "Frontier", 3).
		WithParam("push0Gas", "Shanghai", 2).
		WithParam("dupGas", "Frontier", 3).
		WithParam("swapGas", "Frontier", 3).

		// Header/fee-market parameters (HeaderCodec §4.2).
		WithParam("gasLimitBoundDivisor", "Frontier", 1024).
		WithParam("minGasLimit", "Frontier", 5000).
		WithParam("elasticityMultiplier", "London", 2).
		WithParam("baseFeeMaxChangeDenominator", "London", 8).
		WithParam("durationLimit", "Frontier", 13).
		WithParam("difficultyBoundDivisor", "Frontier", 2048).
		WithParam("minimumDifficulty", "Frontier", 131072).
		WithParam("difficultyBombDelay", "Byzantium", 3000000).
		WithParam("difficultyBombDelay", "Constantinople", 5000000).
		WithParam("difficultyBombDelay", "MuirGlacier", 9000000).
		WithParam("difficultyBombDelay", "London", 9700000).
		WithParam("difficultyBombDelay", "ArrowGlacier", 10700000).
		WithParam("difficultyBombDelay", "GrayGlacier", 11400000).

		// Blob gas (EIP-4844/7691) parameters.
		WithParam("blobGasPerBlob", "Cancun", 131072).
		WithParam("targetBlobGasPerBlock", "Cancun", 393216).
		WithParam("maxBlobGasPerBlock", "Cancun", 786432).
		WithParam("blobBaseFeeUpdateFraction", "Cancun", 3338477).
		WithParam("targetBlobGasPerBlock", "Prague", 786432).
		WithParam("maxBlobGasPerBlock", "Prague", 1179648).
		WithParam("blobBaseFeeUpdateFraction", "Prague", 5007716).

		// EIP-7934 RLP block size cap (Osaka).
		WithParam("maxRlpBlockSize", "Osaka", 10485760)
}
