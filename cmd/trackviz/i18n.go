// Package main provides localization for the trackviz CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Render tracking annotation overlays as images and videos": "トラッキングのアノテーションを画像や動画として描画",

		// Run command
		"Visualize tracking results over the source videos": "トラッキング結果を元動画に重ねて可視化",

		// Flags
		"YAML configuration file":                       "YAML設定ファイル",
		"Directory of per-video frame image folders":    "動画ごとのフレーム画像フォルダのディレクトリ",
		"Directory of source .mp4 files":                "入力.mp4ファイルのディレクトリ",
		"Directory of per-video annotation JSON files":  "動画ごとのアノテーションJSONのディレクトリ",
		"Output directory":                              "出力ディレクトリ",
		"Write rendered frames as image files":          "描画済みフレームを画像ファイルとして保存",
		"Encode rendered frames into one MP4 per video": "描画済みフレームを動画ごとに1つのMP4へエンコード",
		"Output video frame rate":                       "出力動画のフレームレート",
		"Only visualize the first N videos":             "先頭N本の動画のみ可視化",
		"Sample at most N evenly spaced frames per video": "動画ごとに最大Nフレームを等間隔に抽出",
		"Render worker count (0 uses all CPUs)":           "描画ワーカー数（0で全CPUを使用）",
		"Visualizer to apply, in order (bbox, ground_truth, trajectories, scalars)": "適用するビジュアライザ（順序どおりに適用: bbox, ground_truth, trajectories, scalars）",
		"Log level (debug, info, warn, error)": "ログレベル (debug, info, warn, error)",
		"Suppress all output except errors":    "エラー以外の出力を抑制",

		// Errors
		"either frames-dir or videos-dir must be configured":  "frames-dir または videos-dir のいずれかを設定してください",
		"ffmpeg not found; install it or disable video output": "ffmpegが見つかりません。インストールするか動画出力を無効にしてください",

		// Completion
		"Visualized %d videos into %s": "%d 本の動画を %s に可視化しました",
	})
}
