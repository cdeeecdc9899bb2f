package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting visualization of %d videos":    "%d 本の動画の可視化を開始します",
		"Visualizing %s (%d frames, %d sampled)": "%s を可視化中 (%d フレーム中 %d フレームを抽出)",
		"Visualization completed for %s":         "%s の可視化が完了しました",
		"Visualization failed for %s: %s":        "%s の可視化に失敗しました: %s",
		"Finalizing video output for %s failed: %s": "%s の動画出力の確定に失敗しました: %s",
		"Interrupted, shutting down...":          "中断されました。シャットダウン中...",

		// Render pool
		"Rendering %d tasks with %d workers": "%d タスクを %d ワーカーで描画中",

		// Encoder
		"Opening video output %s": "動画出力 %s を開いています",
		"Encoded %d frames to %s": "%d フレームを %s にエンコードしました",
		"Flushing encoder for %s": "%s のエンコーダをフラッシュ中",

		// Image sink
		"Wrote %d images to %s": "%d 枚の画像を %s に書き出しました",

		// Sources
		"Probing %s: %d frames at %.2f fps": "%s を解析中: %d フレーム, %.2f fps",
		"Skipping unreadable video %s: %s":  "読み込めない動画 %s をスキップします: %s",
	})
}
